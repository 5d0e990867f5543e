// Package mediatypes decides whether a filesystem entry is a displayable
// medium and maps it to a MIME type.
//
// This package exists as a dependency-free foundation that can be imported
// by other packages without creating import cycles. Classification is
// strictly extension based:
//
//	mediatypes.Classify("IMG_0001.JPG") // MediumImage
//	mediatypes.Classify("clip.webm")    // MediumVideo
//	mediatypes.Classify("notes.txt")    // MediumUnsupported
//
// The allow-list is fixed at .jpg/.jpeg/.png for photos and .mp4/.webm/.ogv
// for videos. There is no content sniffing; a mislabelled file is simply
// treated as whatever its extension claims, which keeps directory scans
// cheap at the cost of trusting file names.
package mediatypes
