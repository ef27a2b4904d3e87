package rating

import (
	"strings"
	"time"
	"unicode/utf8"

	"ride-share/internal/domain/apperr"
	"ride-share/internal/domain/booking"
)

const (
	MinScore = 1
	MaxScore = 5

	// EditWindow is how long after creation the rater may still change a rating.
	EditWindow = 7 * 24 * time.Hour

	maxReviewLength = 1000
)

// Categories are optional per-aspect scores. Zero means the aspect was not scored.
type Categories struct {
	Punctuality   int `json:"punctuality,omitempty"`
	Cleanliness   int `json:"cleanliness,omitempty"`
	Driving       int `json:"driving,omitempty"`
	Communication int `json:"communication,omitempty"`
	Friendliness  int `json:"friendliness,omitempty"`
}

// Validate checks every scored aspect is within range.
func (c Categories) Validate() error {
	for name, v := range map[string]int{
		"punctuality":   c.Punctuality,
		"cleanliness":   c.Cleanliness,
		"driving":       c.Driving,
		"communication": c.Communication,
		"friendliness":  c.Friendliness,
	} {
		if v != 0 && (v < MinScore || v > MaxScore) {
			return ErrInvalidCategory.WithMsg("%s must be between %d and %d", name, MinScore, MaxScore)
		}
	}
	return nil
}

// Rating is the domain entity corresponding to the `ratings` table.
type Rating struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	BookingID         string
	RaterID           string
	RateeID           string
	IsPassengerRating bool

	Score      int
	Categories Categories
	Review     string
}

var (
	ErrRatingNotFound      = apperr.New(apperr.KindNotFound, "RATING_NOT_FOUND", "rating not found")
	ErrBookingNotCompleted = apperr.New(apperr.KindInvalidState, "BOOKING_NOT_COMPLETED", "only completed bookings can be rated")
	ErrNotParticipant      = apperr.New(apperr.KindForbidden, "NOT_PARTICIPANT", "only the passenger or the driver of the booking can rate it")
	ErrDuplicateRating     = apperr.New(apperr.KindDuplicate, "DUPLICATE_RATING", "this booking has already been rated by you")
	ErrNotOwner            = apperr.New(apperr.KindForbidden, "NOT_RATING_OWNER", "only the author of the rating can do this")
	ErrEditWindowExpired   = apperr.New(apperr.KindEditWindowExpired, "EDIT_WINDOW_EXPIRED", "ratings can only be changed within 7 days")

	ErrInvalidScore    = apperr.New(apperr.KindInvalidInput, "INVALID_SCORE", "score must be between 1 and 5")
	ErrInvalidCategory = apperr.New(apperr.KindInvalidInput, "INVALID_CATEGORY_SCORE", "category score must be between 1 and 5")
	ErrReviewTooLong   = apperr.New(apperr.KindInvalidInput, "REVIEW_TOO_LONG", "review is too long")
)

// Direction resolves who is rated when raterID rates the booking. It fails when the
// booking is not completed, when raterID is not a party, or when that side already rated.
func Direction(b *booking.Booking, raterID string) (rateeID string, isPassengerRating bool, err error) {
	if b.Status != booking.StatusCompleted {
		return "", false, ErrBookingNotCompleted.WithMsg("booking is %s; only completed bookings can be rated", b.Status)
	}
	if !b.IsParty(raterID) {
		return "", false, ErrNotParticipant
	}
	isPassengerRating = raterID == b.PassengerID
	if b.RatedBy(isPassengerRating) {
		return "", false, ErrDuplicateRating
	}
	return b.Counterparty(raterID), isPassengerRating, nil
}

// NewRatingParams is the input for NewRating.
type NewRatingParams struct {
	BookingID         string
	RaterID           string
	RateeID           string
	IsPassengerRating bool
	Score             int
	Categories        Categories
	Review            string
}

// NewRating validates scores and builds a rating.
func NewRating(p NewRatingParams, now time.Time) (*Rating, error) {
	if err := validateScore(p.Score); err != nil {
		return nil, err
	}
	if err := p.Categories.Validate(); err != nil {
		return nil, err
	}
	review, err := normalizeReview(p.Review)
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	return &Rating{
		CreatedAt:         now,
		UpdatedAt:         now,
		BookingID:         p.BookingID,
		RaterID:           p.RaterID,
		RateeID:           p.RateeID,
		IsPassengerRating: p.IsPassengerRating,
		Score:             p.Score,
		Categories:        p.Categories,
		Review:            review,
	}, nil
}

// Patch changes a rating. Nil fields are left unchanged.
type Patch struct {
	Score      *int
	Categories *Categories
	Review     *string
}

// Editable checks the edit window.
func (r *Rating) Editable(now time.Time) error {
	if now.After(r.CreatedAt.Add(EditWindow)) {
		return ErrEditWindowExpired
	}
	return nil
}

// Apply updates the rating and returns the score delta for the ratee aggregate.
func (r *Rating) Apply(p Patch, now time.Time) (int, error) {
	if err := r.Editable(now); err != nil {
		return 0, err
	}

	delta := 0
	if p.Score != nil {
		if err := validateScore(*p.Score); err != nil {
			return 0, err
		}
		delta = *p.Score - r.Score
	}
	if p.Categories != nil {
		if err := p.Categories.Validate(); err != nil {
			return 0, err
		}
	}
	var review string
	if p.Review != nil {
		var err error
		if review, err = normalizeReview(*p.Review); err != nil {
			return 0, err
		}
	}

	if p.Score != nil {
		r.Score = *p.Score
	}
	if p.Categories != nil {
		r.Categories = *p.Categories
	}
	if p.Review != nil {
		r.Review = review
	}
	r.UpdatedAt = now.UTC()
	return delta, nil
}

// Clone returns a copy of the rating.
func (r *Rating) Clone() *Rating {
	cp := *r
	return &cp
}

func validateScore(score int) error {
	if score < MinScore || score > MaxScore {
		return ErrInvalidScore
	}
	return nil
}

func normalizeReview(review string) (string, error) {
	review = strings.TrimSpace(review)
	if utf8.RuneCountInString(review) > maxReviewLength {
		return "", ErrReviewTooLong.WithMsg("review must be at most %d characters", maxReviewLength)
	}
	return review, nil
}
