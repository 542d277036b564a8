package main

import (
	"crypto/rand"
	"math"
)

// RadiusForMass converts a robot or junk mass to its collision radius.
// Radius is always derived from mass, never stored independently.
func RadiusForMass(mass float64) float64 {
	return math.Sqrt(mass) * 3
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Distance returns the distance between two points
func Distance(a, b Position) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// CheckCollision checks if two circles overlap
func CheckCollision(p1 Position, r1 float64, p2 Position, r2 float64) bool {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	dist2 := dx*dx + dy*dy
	radSum := r1 + r2
	return dist2 < radSum*radSum
}

// ClampToBounds keeps a circle of the given radius fully inside the room
func ClampToBounds(pos Position, radius float64, room *Room) Position {
	return Position{
		X: Clamp(pos.X, radius, room.Bounds.Width-radius),
		Y: Clamp(pos.Y, radius, room.Bounds.Height-radius),
	}
}

// RandomSpawnPosition picks a uniformly random point away from the edges
func RandomSpawnPosition(room *Room) Position {
	return Position{
		X: randFloat()*(room.Bounds.Width-100) + 50,
		Y: randFloat()*(room.Bounds.Height-100) + 50,
	}
}

var robotColors = []string{
	"#FF0000", "#00FF00", "#0000FF", "#FFFF00",
	"#FF00FF", "#00FFFF", "#FFA500", "#800080",
}

// RandomColor picks a display color from the fixed palette
func RandomColor() string {
	return robotColors[int(randFloat()*float64(len(robotColors)))%len(robotColors)]
}

var junkTypes = []JunkType{JunkMetal, JunkCircuit, JunkEnergy}

// RandomJunkType picks a junk flavor tag (rendering only)
func RandomJunkType() JunkType {
	return junkTypes[int(randFloat()*float64(len(junkTypes)))%len(junkTypes)]
}

// round1 rounds to one decimal place to keep snapshots compact
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// randFloat returns a random float64 in [0, 1)
var randSrc uint64

func randFloat() float64 {
	// Simple xorshift for non-crypto random
	randSrc ^= randSrc << 13
	randSrc ^= randSrc >> 7
	randSrc ^= randSrc << 17
	if randSrc == 0 {
		randSrc = 1
	}
	return float64(randSrc%10000) / 10000.0
}

func init() {
	// Seed from crypto/rand
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	for i, v := range b {
		randSrc |= uint64(v) << (uint(i) * 8)
	}
	if randSrc == 0 {
		randSrc = 1
	}
}
