// Package relocate makes built artifacts independent of the absolute path
// they were built under. The build runs inside a prefix padded to a fixed
// length L; afterwards every produced file is classified text or binary and
// each occurrence of the build prefix is rewritten to a placeholder of the
// same length. Binary artifacts never change byte length. A manifest records
// which files were touched and in which mode, so installation can apply the
// inverse substitution per file.
package relocate
