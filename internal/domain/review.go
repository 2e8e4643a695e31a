package domain

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID            int64  `json:"id"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment"`
	Date          string `json:"date"`
	Client        Person `json:"client"`
	Specialist    Person `json:"specialist"`
	AppointmentID int64  `json:"appointment_id"`
}

// ReviewRequest is the payload of POST /reviews.
type ReviewRequest struct {
	Rating        int    `json:"rating"`
	Comment       string `json:"comment"`
	AppointmentID int64  `json:"appointment_id"`
}

func (r ReviewRequest) ValidRating() bool {
	return r.Rating >= MinRating && r.Rating <= MaxRating
}

// AverageRating returns the mean rating, or 0 for no reviews.
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
