// Copyright (c) 2021, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package timing

import "fmt"

// GridMargin is how many input steps the candidate grid extends past the last end point
const GridMargin = 3

// Convert maps durs, each a multiple of from, onto durations that are
// multiples of to. Each cumulative end point snaps to the nearest point of
// the grid {k*to : 0 <= k*to < end + GridMargin*from}; on a tie the earlier
// grid point wins. Durations are then recovered by differencing.
func Convert(durs []Tick, from, to Tick) ([]Tick, error) {
	if len(durs) == 0 {
		return nil, ErrEmpty
	}
	if from <= 0 || to <= 0 {
		return nil, ErrInvalid
	}
	for i, d := range durs {
		if d < 0 {
			return nil, fmt.Errorf("%w: duration %d at %d", ErrInvalid, d, i)
		}
		if d%from != 0 {
			return nil, fmt.Errorf("%w: duration %d at %d by rate %d", ErrNotDivisible, d, i, from)
		}
	}

	ends := make([]Tick, len(durs))
	var end Tick
	for i, d := range durs {
		end += d
		ends[i] = end
	}
	limit := end + GridMargin*from

	out := make([]Tick, len(durs))
	var prev Tick
	for i, e := range ends {
		p := snap(e, to, limit)
		out[i] = p - prev
		prev = p
	}
	return out, nil
}

// ConvertTo is Convert followed by padding the last duration so the total is
// exactly total. The shortfall must be non-negative and a multiple of to.
func ConvertTo(durs []Tick, from, to, total Tick) ([]Tick, error) {
	out, err := Convert(durs, from, to)
	if err != nil {
		return nil, err
	}
	sum := Sum(out)
	if sum > total {
		return nil, fmt.Errorf("%w: %d > %d", ErrTotalExceeded, sum, total)
	}
	diff := total - sum
	if diff%to != 0 {
		return nil, fmt.Errorf("%w: shortfall %d by rate %d", ErrTotalRemainder, diff, to)
	}
	out[len(out)-1] += diff
	return out, nil
}

// snap returns the grid point nearest to e. Grid points are multiples of to
// below limit. The lower neighbour always lies on the grid since e < limit.
func snap(e, to, limit Tick) Tick {
	lo := (e / to) * to
	hi := lo + to
	if hi >= limit {
		return lo
	}
	if e-lo <= hi-e {
		return lo
	}
	return hi
}
