// Package io loads reference images into pixel buffers and writes sprites
// back out.
//
// # Import
//
// [DecodeImage] sniffs the leading bytes of a stream and dispatches to the
// matching decoder:
//
//   - png, jpeg, gif: standard library
//   - bmp, webp: golang.org/x/image
//   - tga: github.com/ftrvxmtrx/tga (TGA has no magic number, so it is the
//     fallback when nothing else matches)
//
// [LoadImage] does the same for a file path.
//
//	ref, err := io.LoadImage("knight.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Every decoded image is converted to a [pixel.Buffer]; the source bounds
// origin is dropped.
//
// # Export
//
// [EncodeSprite] writes a buffer as png or lossless webp, and [SaveSprite]
// picks the format from the file extension:
//
//	err := io.SaveSprite(sprite, "out/knight.webp")
//
// Both formats keep alpha, so transparent pixels survive a round trip.
//
// # Errors
//
// Failures carry codes from [errors]: INVALID_IMAGE for undecodable input,
// INVALID_FORMAT for an unsupported output format and FILE_NOT_FOUND for a
// missing file. Paths are used as given; callers facing untrusted input
// check them with [errors.ValidatePath] first.
package io
