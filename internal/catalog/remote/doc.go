// Package remote implements the catalog port over the catalog server's HTTP
// API.
//
// The server exposes no existence queries, so room and part checks list every
// room, session, and part and scan for a match. New parts are submitted as
// recorder "FileClosed" events; the server acknowledges before its write
// lands, so CreatePart polls for the part afterwards and only reports success
// once it is visible.
package remote
