package sam

// RegionToBin computes the R-tree-like BAI bin covering the half-open
// reference interval [beg, end). Bin 0 covers 512Mb; bins 1-8 cover 64Mb;
// 9-72 cover 8Mb; 73-584 cover 1Mb; 585-4680 cover 128kb; 4681-37449 cover
// 16kb.
func RegionToBin(beg, end int32) uint32 {
	end--
	switch {
	case beg>>14 == end>>14:
		return uint32(((1<<15)-1)/7 + (beg >> 14))
	case beg>>17 == end>>17:
		return uint32(((1<<12)-1)/7 + (beg >> 17))
	case beg>>20 == end>>20:
		return uint32(((1<<9)-1)/7 + (beg >> 20))
	case beg>>23 == end>>23:
		return uint32(((1<<6)-1)/7 + (beg >> 23))
	case beg>>26 == end>>26:
		return uint32(((1<<3)-1)/7 + (beg >> 26))
	default:
		return 0
	}
}

// BinsForRange returns every bin that can possibly contain an alignment
// overlapping the half-open interval [beg, end): bin 0, plus every bin whose
// window overlaps the range at each of the five finer levels.
func BinsForRange(beg, end int32) []uint32 {
	bins := []uint32{0}
	e := end - 1
	for k := 1 + (beg >> 26); k <= 1+(e>>26); k++ {
		bins = append(bins, uint32(k))
	}
	for k := 9 + (beg >> 23); k <= 9+(e>>23); k++ {
		bins = append(bins, uint32(k))
	}
	for k := 73 + (beg >> 20); k <= 73+(e>>20); k++ {
		bins = append(bins, uint32(k))
	}
	for k := 585 + (beg >> 17); k <= 585+(e>>17); k++ {
		bins = append(bins, uint32(k))
	}
	for k := 4681 + (beg >> 14); k <= 4681+(e>>14); k++ {
		bins = append(bins, uint32(k))
	}
	return bins
}
