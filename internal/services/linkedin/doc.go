// Package linkedin provides a small REST client for publishing transcripts as
// LinkedIn text shares on behalf of the authenticated member.
package linkedin
