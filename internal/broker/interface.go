package broker

// Event is a review/comment lifecycle notification pushed to feed clients.
type Event struct {
	Type      string `json:"type"` // "review_created", "review_deleted", "comment_created", "comment_deleted"
	TitleID   int64  `json:"title_id"`
	ReviewID  int64  `json:"review_id"`
	CommentID int64  `json:"comment_id,omitempty"`
	Author    string `json:"author"`
	Score     int    `json:"score,omitempty"`
	Timestamp string `json:"timestamp"`
}

// EventBroker fans review/comment activity out to feed subscribers.
// The redis implementation lets every node of the API see events produced
// on any other node.
type EventBroker interface {
	Publish(event Event) error
	Subscribe() (<-chan Event, error)
	Close() error
}
