// Package api serves the sprite pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz                     build info
//	POST /v1/analyze                  reference image(s) → stored style
//	GET  /v1/styles/{id}              style as JSON, DOT (?format=dot) or SVG (?format=svg)
//	POST /v1/styles/{id}/generate     pipeline options (JSON) → sprite image
//	POST /v1/styles/{id}/validate     sprite image → QA report
//	GET  /v1/palettes                 built-in and stored palette names
//	GET  /v1/palettes/{name}          palette colors
//	PUT  /v1/palettes/{name}          store a palette
//
// References for /v1/analyze are sent either as a raw image body or as a
// multipart form with one or more "reference" files. Errors are JSON
// objects carrying the error code from the errors package; the HTTP status
// follows errors.HTTPStatus.
package api
