// Package s3 stores state backups in Hetzner Object Storage or any other
// S3-compatible service.
package s3
