// Package doctext tags rectified documents by reading their machine
// readable zone (MRZ). The MRZ heuristics and band cropping are always
// available; actual character recognition needs Tesseract and is only
// compiled in with the "ocr" build tag. Without the tag the classifier
// reports ErrUnavailable and the engine leaves captures untagged.
package doctext
