package utils

// Min returns the minimum of two amounts.
func Min(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two amounts.
func Max(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// CeilDiv returns ceil(a / b) for a >= 0 and b > 0.
func CeilDiv(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a-1)/b + 1
}
