package storage

// Bucket URL schemes accepted by OpenBucket
import (
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"
)
