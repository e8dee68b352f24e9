package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	t.Run("round trips every card and face", func(t *testing.T) {
		for suit := 0; suit < NumSuits; suit++ {
			for rank := 0; rank < NumRanks; rank++ {
				for _, down := range []bool{false, true} {
					s, r, d := Encode(suit, rank, down).Decode()
					require.Equal(t, suit, s)
					require.Equal(t, rank, r)
					require.Equal(t, down, d)
				}
			}
		}
	})

	t.Run("packs suit and rank into the low bits", func(t *testing.T) {
		require.Equal(t, Card(0), Encode(Club, Ace, false))
		require.Equal(t, Card(51), Encode(Spade, King, false))
		require.Equal(t, Card(0x80|14), Encode(Diamond, 1, true))
	})

	t.Run("jokers", func(t *testing.T) {
		require.Equal(t, RedJoker, Encode(JokerSuit, 0, false))
		require.Equal(t, BlackJoker, Encode(JokerSuit, 1, false))
		require.True(t, RedJoker.IsRed())
		require.False(t, BlackJoker.IsRed())
		require.Equal(t, "joker_black", BlackJoker.Name())
	})

	t.Run("panics out of range", func(t *testing.T) {
		require.Panics(t, func() { Encode(4, 2, false) })
		require.Panics(t, func() { Encode(0, 13, false) })
		require.Panics(t, func() { Encode(-1, 0, false) })
	})
}

func TestFlip(t *testing.T) {
	c := Encode(Heart, Queen, false)
	require.True(t, c.Flip().FaceDown())
	require.Equal(t, c, c.Flip().Flip(), "Flip should be its own inverse")
	require.Equal(t, c.ID(), c.Flip().ID())
}

func TestRelations(t *testing.T) {
	clubTwo := Encode(Club, 1, false)
	clubAce := Encode(Club, Ace, true)
	spadeThree := Encode(Spade, 2, false)
	heartThree := Encode(Heart, 2, false)
	diamondFour := Encode(Diamond, 3, false)

	t.Run("one rank above ignores suit and face", func(t *testing.T) {
		require.True(t, IsOneRankAbove(clubAce, clubTwo))
		require.True(t, IsOneRankAbove(clubTwo, heartThree))
		require.False(t, IsOneRankAbove(clubTwo, clubAce))
		require.False(t, IsOneRankAbove(clubTwo, diamondFour))
	})

	t.Run("same suit", func(t *testing.T) {
		require.True(t, IsSameSuit(clubAce, clubTwo))
		require.False(t, IsSameSuit(clubTwo, spadeThree))
	})

	t.Run("similar suit groups by colour", func(t *testing.T) {
		require.True(t, IsSimilarSuit(clubTwo, spadeThree))
		require.True(t, IsSimilarSuit(heartThree, diamondFour))
		require.False(t, IsSimilarSuit(clubTwo, heartThree))
	})
}

func TestNames(t *testing.T) {
	t.Run("formats suit and rank", func(t *testing.T) {
		require.Equal(t, "club_1", Encode(Club, Ace, false).Name())
		require.Equal(t, "diamond_10", Encode(Diamond, 9, false).Name())
		require.Equal(t, "heart_king", Encode(Heart, King, true).Name())
		require.Equal(t, "spade_jack", Encode(Spade, Jack, false).Name())
	})

	t.Run("parses every card name", func(t *testing.T) {
		for _, c := range NewDeck() {
			got, err := ParseCard(c.Name(), true)
			require.NoError(t, err)
			require.Equal(t, c.Flip(), got)
		}
	})

	t.Run("parses numeric face ranks", func(t *testing.T) {
		got, err := ParseCard("spade_13", false)
		require.NoError(t, err)
		require.Equal(t, Encode(Spade, King, false), got)
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		for _, name := range []string{"", "club", "cup_1", "club_0", "club_14"} {
			_, err := ParseCard(name, false)
			require.ErrorIs(t, err, ErrInvalidCard, name)
		}
	})
}
