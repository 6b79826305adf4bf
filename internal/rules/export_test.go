package rules

var UniquePowerOfTwo = uniquePowerOfTwo
