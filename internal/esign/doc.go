// Package esign implements the two e-signature operations exposed by signbridge:
// listing the field types a signer can be asked to fill in, and submitting a
// document for embedded signing.
//
// Submission is a strictly ordered three-step workflow against Zoho Sign:
// create the request with the document, attach field placements and submit it,
// then mint the signing URL. Failures collapse into a single externally visible
// message while SubmissionError keeps the failing step for logs.
package esign
