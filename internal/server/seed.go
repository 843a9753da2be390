package server

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/litquest/hottabych/internal/quest"
)

// SeedDemo creates the Hottabych route, its achievements, and the initial
// admin account if no motifs exist yet. Idempotent: does nothing on a
// database that already has content.
func SeedDemo(ctx context.Context, logger *slog.Logger, store Store, adminEmail, adminPassword string) error {
	motifs, err := store.ListMotifs(ctx)
	if err != nil {
		return err
	}
	if len(motifs) == 0 {
		motif := quest.Motif{
			Name:        "Старик Хоттабыч",
			Description: "Маршрут по местам повести Лазаря Лагина «Старик Хоттабыч»",
			Legend:      "Пройдите по Москве Вольки Костылькова и джинна Гассана Абдуррахмана ибн Хоттаба.",
			IsActive:    true,
		}
		pois := []quest.POI{
			{
				Name:        "Москва-река",
				Description: "Здесь Волька выловил из реки кувшин с джинном.",
				Quote:       "«Волька нырнул и сразу нащупал на дне скользкий глиняный сосуд.»",
				Latitude:    55.7520,
				Longitude:   37.6175,
				Order:       1,
				Radius:      100,
				Points:      50,
			},
			{
				Name:        "Парк имени Баумана",
				Description: "Сюда Хоттабыч перенёс Вольку на ковре-самолёте.",
				Latitude:    55.7630,
				Longitude:   37.6790,
				Order:       2,
				Radius:      100,
				Points:      50,
			},
			{
				Name:        "ЦПКиО имени Горького",
				Description: "В парке культуры джинн впервые увидел эскимо.",
				Quote:       "«Хоттабыч съел сорок три порции эскимо.»",
				Latitude:    55.7309,
				Longitude:   37.6019,
				Order:       3,
				Radius:      150,
				Points:      50,
			},
			{
				Name:        "Большой театр",
				Description: "Цирковое представление, сорванное чарами Хоттабыча.",
				Latitude:    55.7603,
				Longitude:   37.6186,
				Order:       4,
				Radius:      100,
				Points:      75,
			},
			{
				Name:        "Стадион Динамо",
				Description: "Футбольный матч, где Хоттабыч подарил каждому игроку по мячу.",
				Quote:       "«С неба посыпались двадцать два мяча.»",
				Latitude:    55.7916,
				Longitude:   37.5589,
				Order:       5,
				Radius:      150,
				Points:      100,
			},
		}
		if _, err := store.CreateMotif(ctx, motif, pois); err != nil {
			return err
		}

		achievements := []quest.Achievement{
			{Name: "Первооткрыватель", Description: "Посетите первую точку маршрута", Condition: quest.ConditionVisitFirstPOI, Points: 25},
			{Name: "Коллекционер историй", Description: "Посетите три точки", Condition: quest.ConditionVisitThreePOIs, Points: 50},
			{Name: "Мастер маршрута", Description: "Пройдите маршрут Хоттабыча целиком", Condition: quest.ConditionCompleteMotif, Points: 100},
			{Name: "Легенда Москвы", Description: "Наберите 500 очков", Condition: quest.ConditionReach500Points, Points: 150},
			{Name: "Ранняя пташка", Description: "Посетите точку до девяти утра", Condition: quest.ConditionVisitBeforeNine, Points: 30},
		}
		for _, a := range achievements {
			if _, err := store.CreateAchievement(ctx, a); err != nil {
				return err
			}
		}

		logger.Info("demo motif and achievements seeded")
	}

	if adminEmail != "" && adminPassword != "" {
		hasAdmins, err := store.HasAdmins(ctx)
		if err != nil {
			return err
		}
		if !hasAdmins {
			hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			if err := store.CreateAdmin(ctx, adminEmail, string(hash)); err != nil {
				return err
			}
			logger.Info("initial admin created", "email", adminEmail)
		}
	}

	return nil
}
