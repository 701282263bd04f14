package program

import (
	"bossbounty/internal/domain/game"

	"github.com/gagliardetto/solana-go"
)

var (
	feedDiscriminator        = Discriminator("feed")
	claimRewardDiscriminator = Discriminator("claim_reward")
)

// FeedInstruction smashes the boss: the caller becomes the last feeder and
// pays the entry into the game account.
func FeedInstruction(programID, gameAccount, caller game.Address) solana.Instruction {
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(gameAccount, true, false),
		solana.NewAccountMeta(caller, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}, append([]byte(nil), feedDiscriminator...))
}

func ClaimRewardInstruction(programID, gameAccount, caller, winner game.Address) solana.Instruction {
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(gameAccount, true, false),
		solana.NewAccountMeta(caller, true, true),
		solana.NewAccountMeta(winner, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}, append([]byte(nil), claimRewardDiscriminator...))
}
