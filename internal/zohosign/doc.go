// Package zohosign is a minimal client for the Zoho Sign REST API.
//
// It covers the calls needed for embedded signing: listing field types,
// creating a request with a document, submitting it with field placements and
// minting an embed token (signing URL). Authentication is delegated to an
// oauth2.TokenSource wrapped in oauth2.Transport.
//
// Zoho Sign takes request payloads as a JSON document in a multipart "data"
// part and wraps most payloads in a {"requests": ...} envelope.
package zohosign
