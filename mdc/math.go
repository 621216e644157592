package mdc

import "github.com/chewxy/math32"

func sqrtf(v float32) float32 { return math32.Sqrt(v) }
