// Package media downloads ad creatives to local files, probes whether
// creative URLs are still reachable, and inspects downloaded images.
//
// Downloads are sequential and leave no partial files behind: bytes are
// streamed to "<dest>.part" and renamed only once the body is complete.
// Availability probes fan out in fixed-size batches.
package media
