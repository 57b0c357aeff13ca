package attendance

import (
	"context"

	"github.com/kozaktomas/smart-attendance/internal/ai"
	"github.com/kozaktomas/smart-attendance/internal/imaging"
	"github.com/kozaktomas/smart-attendance/internal/metrics"
	"github.com/rs/zerolog"
)

// Resolution is the result of a roster scan. Matched is false when nobody matched.
type Resolution struct {
	User     User
	Matched  bool
	Compared int // oracle calls made
}

// Resolver finds the roster entry shown in a captured photo.
type Resolver struct {
	oracle ai.FaceComparer
	log    zerolog.Logger
}

func NewResolver(oracle ai.FaceComparer, log zerolog.Logger) *Resolver {
	return &Resolver{oracle: oracle, log: log}
}

// Resolve compares candidate with every stored photo in roster order and returns the first
// match. The scan is sequential and stops at the first positive answer. Any comparison
// failure aborts the scan with an *OracleError; nothing is retried.
func (r *Resolver) Resolve(ctx context.Context, candidate []byte, roster []User) (Resolution, error) {
	var res Resolution
	for _, u := range roster {
		reference, err := imaging.FromDataURL(u.Photo)
		if err != nil {
			metrics.Resolutions.WithLabelValues("oracle_error").Inc()
			return Resolution{Compared: res.Compared}, &OracleError{Candidate: u.ID, Err: err}
		}

		match, err := r.oracle.CompareFaces(ctx, reference, candidate)
		res.Compared++
		if err != nil {
			r.log.Error().Err(err).Str("user_id", u.ID).Int("compared", res.Compared).Msg("Error during face comparison")
			metrics.Resolutions.WithLabelValues("oracle_error").Inc()
			return Resolution{Compared: res.Compared}, &OracleError{Candidate: u.ID, Err: err}
		}
		if match {
			res.User = u
			res.Matched = true
			metrics.Resolutions.WithLabelValues("matched").Inc()
			r.log.Debug().Str("user_id", u.ID).Int("compared", res.Compared).Msg("Identity resolved")
			return res, nil
		}
	}
	metrics.Resolutions.WithLabelValues("no_match").Inc()
	return res, nil
}
