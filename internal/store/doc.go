// Package store defines the persistence gateway consumed by the
// grading workflow. The workflow treats it as a black box: a grading
// result is either saved and an identifier comes back, or the save
// fails with a classified error. Resolving a student name to an
// existing account is the gateway's job, not the workflow's.
package store
