package game

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/cbodonnell/minimmo/pkg/game/constants"
	"github.com/cbodonnell/minimmo/pkg/repositories/models"
)

// RandomCharacter rolls a character with a pooled name and stats drawn from the random ranges.
func RandomCharacter(rng *rand.Rand) models.CharacterCreate {
	name := constants.RandomNames[rng.Intn(len(constants.RandomNames))] +
		fmt.Sprint(randomInt(rng, constants.RandomNameSuffixMin, constants.RandomNameSuffixMax))
	return models.CharacterCreate{
		Name:   name,
		Image:  CharacterImage(name),
		Health: randomInt(rng, constants.RandomHealthMin, constants.RandomHealthMax),
		Armor:  randomInt(rng, constants.RandomArmorMin, constants.RandomArmorMax),
		Mana:   randomInt(rng, constants.RandomManaMin, constants.RandomManaMax),
		Kills:  randomInt(rng, constants.RandomKillsMin, constants.RandomKillsMax),
	}
}

// CharacterImage is the generated avatar URL for a name.
func CharacterImage(name string) string {
	return fmt.Sprintf("https://robohash.org/%s?set=set2", strings.ToLower(name))
}

// randomInt is inclusive of both bounds.
func randomInt(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}

// CreateRandomCharacter stores a new randomly rolled character.
func (gm *GameManager) CreateRandomCharacter(ctx context.Context) (*models.Character, error) {
	gm.gridLock.Lock()
	create := RandomCharacter(gm.rng)
	gm.gridLock.Unlock()

	character, err := gm.repository.CreateCharacter(ctx, create)
	if err != nil {
		return nil, fmt.Errorf("failed to create character: %w", err)
	}
	return character, nil
}
