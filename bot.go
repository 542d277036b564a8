package main

import (
	"math"
)

const (
	BotDetectRange   = 400.0 // junk-seeking radius
	BotFleeRange     = 250.0 // distance at which a predator triggers flight
	BotDriftChance   = 0.02  // per-tick chance to pick a new wander heading
	BotNamePrefix    = "Scrap-"
	botNameAlphabet  = "abcdefghijklmnopqrstuvwxyz0123456789"
	botNameSuffixLen = 4
)

// NewBot creates an AI-controlled robot. Bots use the same entity and
// the same tick rules as players; only their direction is set by
// steerBot instead of move messages.
func NewBot(room *Room) *Robot {
	robot := NewRobot(botName(), room)
	robot.Bot = true
	angle := randFloat() * 2 * math.Pi
	robot.Direction = Position{X: math.Cos(angle), Y: math.Sin(angle)}
	return robot
}

func botName() string {
	suffix := make([]byte, botNameSuffixLen)
	for i := range suffix {
		suffix[i] = botNameAlphabet[int(randFloat()*float64(len(botNameAlphabet)))%len(botNameAlphabet)]
	}
	return BotNamePrefix + string(suffix)
}

// topUpBots keeps the room's bot population at the configured target;
// the caller holds the manager lock.
func (m *RoomManager) topUpBots(room *Room) {
	bots := 0
	for _, robot := range room.Robots {
		if robot.Bot {
			bots++
		}
	}
	for ; bots < m.botTarget; bots++ {
		bot := NewBot(room)
		room.Robots[bot.ID] = bot
	}
}

// steerBot picks the bot's direction for this tick: flee anything that
// can eat it, otherwise chase the nearest junk in range, otherwise
// wander with an occasional random heading change.
func steerBot(bot *Robot, room *Room) {
	// Flight beats appetite
	if predator := nearestPredator(bot, room); predator != nil {
		dx := bot.Position.X - predator.Position.X
		dy := bot.Position.Y - predator.Position.Y
		setHeading(bot, dx, dy)
		return
	}

	if junk := nearestJunk(bot, room); junk != nil {
		dx := junk.Position.X - bot.Position.X
		dy := junk.Position.Y - bot.Position.Y
		setHeading(bot, dx, dy)
		return
	}

	if randFloat() < BotDriftChance {
		angle := randFloat() * 2 * math.Pi
		bot.Direction = Position{X: math.Cos(angle), Y: math.Sin(angle)}
	}
	// Bounce off walls instead of grinding against them
	if bot.Position.X <= bot.Radius || bot.Position.X >= room.Bounds.Width-bot.Radius {
		bot.Direction.X = -bot.Direction.X
	}
	if bot.Position.Y <= bot.Radius || bot.Position.Y >= room.Bounds.Height-bot.Radius {
		bot.Direction.Y = -bot.Direction.Y
	}
}

func nearestPredator(bot *Robot, room *Room) *Robot {
	var nearest *Robot
	best := BotFleeRange
	for _, other := range room.Robots {
		if other.ID == bot.ID || other.Mass <= bot.Mass*EatMassMargin {
			continue
		}
		if d := Distance(bot.Position, other.Position); d < best {
			best = d
			nearest = other
		}
	}
	return nearest
}

func nearestJunk(bot *Robot, room *Room) *Junk {
	var nearest *Junk
	best := BotDetectRange
	for _, junk := range room.Junk {
		if d := Distance(bot.Position, junk.Position); d < best {
			best = d
			nearest = junk
		}
	}
	return nearest
}

func setHeading(bot *Robot, dx, dy float64) {
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist == 0 {
		return
	}
	bot.Direction = Position{X: dx / dist, Y: dy / dist}
}
