package feedback

// Kind separates emoji reactions from numeric ratings in the feedback log.
type Kind string

const (
	KindReaction Kind = "reaction"
	KindRating   Kind = "rating"
)

type Entry struct {
	Kind      Kind   `json:"kind"`
	Value     string `json:"value"`
	ClaimText string `json:"claimText"`
	Timestamp int64  `json:"timestamp"`
}
