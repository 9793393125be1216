// Package upload publishes generated route tables to S3.
//
// The publisher uploads two artifacts per deploy: the generated Go source and
// a JSON manifest describing the table (modules, parameter depth, content
// digest). Consumers poll the manifest to detect new tables. Public assets
// can be uploaded alongside with PublishDir.
package upload
