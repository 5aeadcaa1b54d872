package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/depthlab/internal/config"
)

// parseVec parses "x,y,z".
func parseVec(s string) (config.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return config.Vec3{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var v [3]float64
	for k, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return config.Vec3{}, fmt.Errorf("component %d: %w", k, err)
		}
		v[k] = f
	}
	return config.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}

func formatVec(v config.Vec3) string {
	return strconv.FormatFloat(v.X, 'g', -1, 64) + "," +
		strconv.FormatFloat(v.Y, 'g', -1, 64) + "," +
		strconv.FormatFloat(v.Z, 'g', -1, 64)
}
