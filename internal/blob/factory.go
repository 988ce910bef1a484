package blob

import (
	"context"
	"fmt"
	"os"
)

// Open selects a blob store using environment variables. Defaults to the
// filesystem driver when unset.
//
//	JALSURAKSHA_BLOB_DRIVER: fs|s3|memory (default fs)
//	JALSURAKSHA_BLOB_FS_ROOT: artifact directory for the fs driver
//	JALSURAKSHA_BLOB_S3_*: S3 settings, see OpenS3FromEnv
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("JALSURAKSHA_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystemStore(os.Getenv("JALSURAKSHA_BLOB_FS_ROOT"))
	case DriverS3:
		return OpenS3FromEnv(ctx)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
