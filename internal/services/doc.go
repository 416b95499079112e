// Package services holds the application services the HTTP handlers call
// into. Services own orchestration across the data pipeline, the upload
// store and the mail transport; handlers own only request and response
// shaping.
package services
