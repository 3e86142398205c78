package segment

var (
	LooksLikeDate     = looksLikeDate
	SplitAfterNumbers = splitAfterNumbers
)
