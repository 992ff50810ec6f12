package bootstrap

import (
	"fmt"
	"time"

	"anoa.com/warbler/internal/entity"
	"anoa.com/warbler/pkg/auth"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// DemoPassword is the password of every seeded demo account.
const DemoPassword = "password"

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Message{},
		&entity.Follow{},
		&entity.Like{},
	)
}

type SeedOptions struct {
	Users           int
	MessagesPerUser int
	FollowsPerUser  int
	// Seed makes the generated data reproducible when non-zero.
	Seed int64
}

func DefaultSeedOptions() SeedOptions {
	return SeedOptions{Users: 20, MessagesPerUser: 5, FollowsPerUser: 4}
}

// SeedDemoData fills an empty database with fake users, messages, follows and likes.
// It does nothing when at least one user exists.
func SeedDemoData(db *gorm.DB, hasher auth.Hasher, opts SeedOptions) error {
	var count int64
	if err := db.Model(&entity.User{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Info().Int64("users", count).Msg("Users already exist, skipping demo seed")
		return nil
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	faker := gofakeit.New(seed)

	hash, err := hasher.Hash(DemoPassword)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		users := make([]*entity.User, 0, opts.Users)
		for i := 0; i < opts.Users; i++ {
			bio := faker.Sentence(8)
			location := faker.City()
			users = append(users, &entity.User{
				Username:     fmt.Sprintf("%s%d", faker.Username(), i),
				Email:        fmt.Sprintf("%d.%s", i, faker.Email()),
				PasswordHash: hash,
				Bio:          &bio,
				Location:     &location,
			})
		}
		if len(users) == 0 {
			return nil
		}
		if err := tx.Create(&users).Error; err != nil {
			return err
		}

		var messages []*entity.Message
		for _, u := range users {
			for j := 0; j < opts.MessagesPerUser; j++ {
				messages = append(messages, &entity.Message{
					Text:      truncate(faker.HackerPhrase(), entity.MessageMaxLength),
					UserID:    u.ID,
					Timestamp: time.Now().Add(-time.Duration(faker.Number(1, 60*24*30)) * time.Minute),
				})
			}
		}
		if len(messages) > 0 {
			if err := tx.Create(&messages).Error; err != nil {
				return err
			}
		}

		var follows []entity.Follow
		for i, u := range users {
			for k := 1; k <= opts.FollowsPerUser && k < len(users); k++ {
				other := users[(i+k)%len(users)]
				follows = append(follows, entity.Follow{UserBeingFollowedID: other.ID, UserFollowingID: u.ID})
			}
		}
		if len(follows) > 0 {
			if err := tx.Create(&follows).Error; err != nil {
				return err
			}
		}

		var likes []entity.Like
		for i, m := range messages {
			liker := users[faker.Number(0, len(users)-1)]
			if liker.ID == m.UserID || i%3 != 0 {
				continue
			}
			likes = append(likes, entity.Like{UserID: liker.ID, MessageID: m.ID})
		}
		if len(likes) > 0 {
			if err := tx.Create(&likes).Error; err != nil {
				return err
			}
		}

		log.Info().
			Int("users", len(users)).
			Int("messages", len(messages)).
			Int("follows", len(follows)).
			Int("likes", len(likes)).
			Msg("Demo data seeded")
		return nil
	})
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
