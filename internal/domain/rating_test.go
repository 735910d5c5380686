package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestRatingString(t *testing.T) {
	testCases := []struct {
		rating Rating
		want   string
	}{
		{Again, "Again"},
		{Good, "Good"},
		{Easy, "Easy"},
		{Rating(0), "Rating(0)"},
		{Rating(9), "Rating(9)"},
	}
	for _, tc := range testCases {
		if got := tc.rating.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestRatingJSONRoundTrip(t *testing.T) {
	for _, rating := range []Rating{Again, Good, Easy} {
		data, err := json.Marshal(rating)
		if err != nil {
			t.Fatalf("Marshal(%s): %v", rating, err)
		}
		var back Rating
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("Unmarshal(%s): %v", data, err)
		}
		if back != rating {
			t.Errorf("round trip %s -> %s", rating, back)
		}
	}
}

func TestRatingUnmarshalInvalid(t *testing.T) {
	var r Rating
	err := json.Unmarshal([]byte(`"Hard"`), &r)
	if !errors.Is(err, ErrInvalidRating) {
		t.Errorf("error = %v, want ErrInvalidRating", err)
	}

	if _, err := Rating(42).MarshalText(); !errors.Is(err, ErrInvalidRating) {
		t.Errorf("error = %v, want ErrInvalidRating", err)
	}
}

func TestTimestampRangeDuration(t *testing.T) {
	r := TimestampRange{Start: 10, End: 18.5}
	if got := r.Duration(); got != 8.5 {
		t.Errorf("Duration = %v, want 8.5", got)
	}

	// Degenerate ranges are carried through, not rejected.
	r = TimestampRange{Start: 20, End: 15}
	if got := r.Duration(); got != -5 {
		t.Errorf("Duration = %v, want -5", got)
	}
}
