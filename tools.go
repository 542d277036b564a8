package main

const (
	BlasterRadius      = 100.0
	BlasterDamage      = 10.0 // mass lost per point of attack stat
	MagnetRadius       = 150.0
	MagnetPullStep     = 20.0
	TransformerFloor   = 20.0 // minimum mass to convert
	TransformerRate    = 0.15 // fraction of mass converted
	TransformerParts   = 3    // junk pieces produced per conversion
	TransformerScatter = 80.0
)

// allTools is the canonical tool order used when granting slots
var allTools = []Tool{ToolBlaster, ToolMagnet, ToolTeleport, ToolTransformer}

// ApplyTool activates a tool the robot owns inside its room. Activating
// an unowned or unknown tool is a no-op, not an error.
func ApplyTool(robot *Robot, tool Tool, target *Position, room *Room) {
	if !robot.HasTool(tool) {
		return
	}
	switch tool {
	case ToolBlaster:
		applyBlaster(robot, target, room)
	case ToolMagnet:
		applyMagnet(robot, room)
	case ToolTeleport:
		applyTeleport(robot, target, room)
	case ToolTransformer:
		applyTransformer(robot, room)
	}
}

// applyBlaster strips mass from every other robot near the target.
// Damage never destroys: mass is floored, destruction still requires
// the eating rule during a tick.
func applyBlaster(robot *Robot, target *Position, room *Room) {
	if target == nil {
		return
	}
	for _, other := range room.Robots {
		if other.ID == robot.ID {
			continue
		}
		if Distance(other.Position, *target) <= BlasterRadius {
			damage := robot.Attack * BlasterDamage
			mass := other.Mass - damage
			if mass < MinMass {
				mass = MinMass
			}
			other.SetMass(mass)
		}
	}
}

// applyMagnet pulls nearby junk one step toward the robot, capped at
// the remaining distance so junk never overshoots.
func applyMagnet(robot *Robot, room *Room) {
	for _, junk := range room.Junk {
		dist := Distance(junk.Position, robot.Position)
		if dist > MagnetRadius || dist == 0 {
			continue
		}
		step := MagnetPullStep
		if dist < step {
			step = dist
		}
		junk.Position.X += (robot.Position.X - junk.Position.X) / dist * step
		junk.Position.Y += (robot.Position.Y - junk.Position.Y) / dist * step
	}
}

// applyTeleport relocates the robot to the target, clamped to bounds
func applyTeleport(robot *Robot, target *Position, room *Room) {
	if target == nil {
		return
	}
	robot.Position = ClampToBounds(*target, robot.Radius, room)
}

// applyTransformer converts a fraction of the robot's mass into equal
// junk pieces scattered around it
func applyTransformer(robot *Robot, room *Room) {
	if robot.Mass <= TransformerFloor {
		return
	}
	converted := float64(int(robot.Mass * TransformerRate))
	robot.AddMass(-converted)
	for i := 0; i < TransformerParts; i++ {
		junk := NewJunk(Position{
			X: robot.Position.X + (randFloat()-0.5)*TransformerScatter,
			Y: robot.Position.Y + (randFloat()-0.5)*TransformerScatter,
		}, converted/TransformerParts, JunkEnergy)
		room.Junk[junk.ID] = junk
	}
}

// AvailableTools returns the tools the robot does not own yet, in
// canonical grant order
func AvailableTools(robot *Robot) []Tool {
	out := make([]Tool, 0, len(allTools))
	for _, t := range allTools {
		if !robot.HasTool(t) {
			out = append(out, t)
		}
	}
	return out
}
