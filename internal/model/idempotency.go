package model

import "time"

// IdempotencyRecord is the stored outcome of a request made with an idempotency key.
type IdempotencyRecord struct {
	Status     int       `json:"status"`
	Body       []byte    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
	Processing bool      `json:"processing"` // 正在处理中，用于防止并发竞争
}
