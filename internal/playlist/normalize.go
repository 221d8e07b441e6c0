package playlist

import "io"

// Result is the output of one normalization run: live channels and on-demand
// entries, each independently deduplicated and sorted.
type Result struct {
	Live []*Entry
	VOD  []*Entry
}

// Normalize runs the full pipeline over a playlist: parse, group inference,
// live/VOD split, quality scoring, then per-list dedup. Processing is
// sequential on purpose: dedup tie-breaking is first-seen and must stay
// deterministic.
func Normalize(r io.Reader) (Result, error) {
	entries, err := Parse(r)
	if err != nil {
		return Result{}, err
	}
	var live, vod []*Entry
	for i := range entries {
		e := &entries[i]
		e.Group = InferGroup(e)
		e.Score = QualityScore(e.Title, e.URL)
		if IsVOD(e) {
			vod = append(vod, e)
		} else {
			live = append(live, e)
		}
	}
	return Result{Live: Dedupe(live), VOD: Dedupe(vod)}, nil
}
