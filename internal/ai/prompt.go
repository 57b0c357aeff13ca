package ai

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode"

	"github.com/kozaktomas/smart-attendance/internal/constants"
	"github.com/kozaktomas/smart-attendance/internal/imaging"
)

//go:embed prompts/compare_faces.txt
var compareFacesPrompt string

// CompareFacesPrompt returns the instruction sent along with the two photos.
func CompareFacesPrompt() string {
	return strings.TrimSpace(compareFacesPrompt)
}

// ParseVerdict interprets the model's free-text answer.
//
// In strict mode the trimmed, lower-cased answer must be exactly "yes"; "Yes." and
// "Yes, definitely" are not a match. Lenient mode accepts any answer whose first word is "yes".
func ParseVerdict(answer, mode string) bool {
	normalized := strings.ToLower(strings.TrimSpace(answer))
	if mode != constants.MatchModeLenient {
		return normalized == "yes"
	}
	words := strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	return len(words) > 0 && words[0] == "yes"
}

// prepareImages shrinks both photos to the oracle size and re-encodes them as JPEG.
func prepareImages(reference, candidate []byte) ([]byte, []byte, error) {
	ref, err := imaging.ResizeImage(reference, constants.OracleImageSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to prepare reference photo: %w", err)
	}
	cand, err := imaging.ResizeImage(candidate, constants.OracleImageSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to prepare captured photo: %w", err)
	}
	return ref, cand, nil
}
