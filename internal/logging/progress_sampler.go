package logging

// ProgressSampler thins per-file progress logs when no interactive progress
// bar is shown: it emits only when the completion percentage enters a new
// bucket.
type ProgressSampler struct {
	bucketSize float64
	lastBucket int
}

// NewProgressSampler constructs a sampler with the given bucket width in
// percent. Non-positive widths default to 10.
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether progress at done/total should be logged. The
// final item always logs.
func (s *ProgressSampler) ShouldLog(done, total int) bool {
	if s == nil {
		return true
	}
	if total <= 0 {
		return false
	}
	if done >= total {
		if s.lastBucket == -2 {
			return false
		}
		s.lastBucket = -2
		return true
	}
	if s.lastBucket == -2 {
		return false
	}
	percent := float64(done) * 100 / float64(total)
	bucket := int(percent / s.bucketSize)
	if bucket > s.lastBucket {
		s.lastBucket = bucket
		return true
	}
	return false
}

// Reset clears the sampler state before a new batch.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastBucket = -1
}
