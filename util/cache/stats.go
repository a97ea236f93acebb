package cache

type Stats struct {
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Evictions   uint64 `json:"evictions"`
	Expirations uint64 `json:"expirations"`

	ForwardSize int `json:"forwardSize"`
	ReverseSize int `json:"reverseSize"`
	RecordsSize int `json:"recordsSize"`
}

// HitRate is hits / (hits + misses), 0 when nothing was looked up yet.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
