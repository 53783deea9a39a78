package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

const (
	MimeCSV = "text/csv"
)

// ExportTimeFormat names archived export files.
const ExportTimeFormat = "20060102T150405Z"
