// Package nexus is the identity and access control core of the PixelForge
// project-tracking backend.
//
// The package exposes an [Engine] that owns authentication (credential check,
// optional TOTP challenge, bearer token issuance), principal resolution,
// role- and relationship-based authorization over projects and documents,
// an append-only audit trail, and transparent encryption of sensitive
// project fields.
//
// Principals live in two disjoint stores: ordinary users and privileged
// admins. Email addresses are unique per store (case-insensitive) and a
// bearer token resolves by id against the user store first, then the admin
// store.
//
// The engine is transport- and storage-agnostic. HTTP routing, the document
// database, and byte storage are external collaborators wired in through the
// [Builder]:
//
//	engine, err := nexus.New().
//		WithConfig(cfg).
//		WithPrincipalStore(principals).
//		WithProjectStore(projects).
//		WithDocumentStore(documents).
//		WithBlobStore(blobs).
//		WithAuditSink(sink).
//		Build()
//
// Ready-made store adapters are provided under stores/ (in-memory, MongoDB,
// filesystem and S3 blob storage), and net/http middleware under middleware/.
package nexus
