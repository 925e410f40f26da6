package domain

// Flood control levels. Each level has its own cooldown per chat.
const (
	SpamLevelNone = iota
	SpamLevelLow
	SpamLevelSensitive
)
