package image

import "time"

// UserImage is an uploaded binary owned by exactly one internal user id.
// The payload is immutable; the only mutation is an owner-checked delete.
type UserImage struct {
	ID          int64
	UserID      int64
	Image       []byte
	Filename    string
	ContentType string
	Size        int64
	UploadedAt  time.Time
}

// Info is the metadata view used by listings, without the payload.
type Info struct {
	ID          int64
	UserID      int64
	Filename    string
	ContentType string
	Size        int64
	UploadedAt  time.Time
}
