package models

import "github.com/cbodonnell/minimmo/pkg/game/constants"

type Character struct {
	ID     int64  `json:"id" bson:"_id"`
	Name   string `json:"name" bson:"name"`
	Image  string `json:"image" bson:"image"`
	Health int    `json:"health" bson:"health"`
	Armor  int    `json:"armor" bson:"armor"`
	Mana   int    `json:"mana" bson:"mana"`
	Kills  int    `json:"kills" bson:"kills"`
}

// CharacterCreate holds the fields of a new character.
// Decode request bodies into NewCharacterCreate() so omitted stats keep their defaults.
type CharacterCreate struct {
	Name   string `json:"name"`
	Image  string `json:"image"`
	Health int    `json:"health"`
	Armor  int    `json:"armor"`
	Mana   int    `json:"mana"`
	Kills  int    `json:"kills"`
}

func NewCharacterCreate() CharacterCreate {
	return CharacterCreate{
		Health: constants.CharacterDefaultHealth,
		Armor:  constants.CharacterDefaultArmor,
		Mana:   constants.CharacterDefaultMana,
		Kills:  constants.CharacterDefaultKills,
	}
}

// CharacterUpdate is a partial update; nil fields are left unchanged.
// omitempty drops nil pointers only, so it marshals straight into a Mongo $set.
type CharacterUpdate struct {
	Name   *string `json:"name,omitempty" bson:"name,omitempty"`
	Image  *string `json:"image,omitempty" bson:"image,omitempty"`
	Health *int    `json:"health,omitempty" bson:"health,omitempty"`
	Armor  *int    `json:"armor,omitempty" bson:"armor,omitempty"`
	Mana   *int    `json:"mana,omitempty" bson:"mana,omitempty"`
	Kills  *int    `json:"kills,omitempty" bson:"kills,omitempty"`
}

type CharacterStats struct {
	Total     int64   `json:"total"`
	AvgHealth float64 `json:"avg_health"`
	AvgArmor  float64 `json:"avg_armor"`
	AvgMana   float64 `json:"avg_mana"`
	AvgKills  float64 `json:"avg_kills"`
}

// Position places exactly one character on one grid cell.
type Position struct {
	ID          int64 `json:"id" bson:"_id"`
	CharacterID int64 `json:"character_id" bson:"character_id"`
	X           int   `json:"x" bson:"x"`
	Y           int   `json:"y" bson:"y"`
}

// PositionView joins a character with its position.
type PositionView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
}

// Enemy is independent of Position; nothing moves enemy rows.
type Enemy struct {
	ID     int64 `json:"id" bson:"_id"`
	X      int   `json:"x" bson:"x"`
	Y      int   `json:"y" bson:"y"`
	Health int   `json:"health" bson:"health"`
}

type EnemyCreate struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Health int `json:"health"`
}

func NewEnemyCreate() EnemyCreate {
	return EnemyCreate{Health: constants.EnemyDefaultHealth}
}
