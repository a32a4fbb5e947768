// Package sink saves response bodies to disk atomically.
//
// [ToFile] copies into a hidden temp file next to the destination and
// renames it into place only when the whole body arrived intact:
//
//	err := sink.ToFile(ctx, body, contentLength, destPath, logger,
//		sink.WithChecksum(sha256.New(), expectedHex),
//		sink.WithMode(0o600),
//	)
//
// A short body, a checksum mismatch or a cancelled context leave the
// destination untouched. Most callers reach it through
// [github.com/adamwoolhether/requisition/client.Response.SaveTo].
package sink
