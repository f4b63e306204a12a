// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package media computes BlurHash placeholders for clothes photos.
//
// The mobile client paints the placeholder while the real photo downloads.
// A placeholder is optional: callers treat a failure as "no placeholder".
package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	"github.com/bbrks/go-blurhash"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// thumbnailSize is the longest edge the image is reduced to before hashing.
const thumbnailSize = 64

// Components of the hash: 4 horizontal, 3 vertical.
const (
	xComponents = 4
	yComponents = 3
)

// BlurHash decodes an encoded image and returns its BlurHash string.
func BlurHash(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("media: decode image: %w", err)
	}

	hash, err := blurhash.Encode(xComponents, yComponents, thumbnail(img))
	if err != nil {
		return "", fmt.Errorf("media: encode blurhash: %w", err)
	}
	return hash, nil
}

// thumbnail scales img down with nearest-neighbour sampling, keeping the aspect ratio.
func thumbnail(img image.Image) image.Image {
	bounds := img.Bounds()
	srcWidth, srcHeight := bounds.Dx(), bounds.Dy()

	if srcWidth <= thumbnailSize && srcHeight <= thumbnailSize {
		return img
	}

	dstWidth, dstHeight := thumbnailSize, thumbnailSize
	if srcWidth > srcHeight {
		dstHeight = max(1, srcHeight*thumbnailSize/srcWidth)
	} else {
		dstWidth = max(1, srcWidth*thumbnailSize/srcHeight)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	for y := 0; y < dstHeight; y++ {
		srcY := bounds.Min.Y + y*srcHeight/dstHeight
		for x := 0; x < dstWidth; x++ {
			srcX := bounds.Min.X + x*srcWidth/dstWidth
			dst.Set(x, y, img.At(srcX, srcY))
		}
	}
	return dst
}
