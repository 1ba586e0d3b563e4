// Package main provides a tool to seed the database with demo cooks and recipes.
//
// Each demo cook publishes a handful of recipes with tags, then everyone
// likes, saves and comments on a random selection of each other's recipes.
// Going through the services keeps tag reconciliation and the search index in
// step with what the running server would do.
//
// Usage:
//
//	DATA_PATH=~/Simmer/data go run ./cmd/seed
//	DATA_PATH=~/Simmer/data go run ./cmd/seed --cooks 6 --drafts
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/simmerapp/simmer-server/internal/auth"
	"github.com/simmerapp/simmer-server/internal/domain"
	domainerrors "github.com/simmerapp/simmer-server/internal/errors"
	"github.com/simmerapp/simmer-server/internal/search"
	"github.com/simmerapp/simmer-server/internal/service"
	"github.com/simmerapp/simmer-server/internal/store/sqlite"
)

var (
	cookCount = flag.Int("cooks", 4, "Number of demo cooks to create")
	drafts    = flag.Bool("drafts", false, "Leave one recipe per cook unpublished")
	password  = flag.String("password", "simmer-demo", "Password for every demo account")
)

type seedRecipe struct {
	title        string
	description  string
	prep, cook   int
	servings     int
	difficulty   domain.Difficulty
	tag          string
	ingredients  []string
	instructions []string
}

var cookbook = []seedRecipe{
	{"Tomato Soup", "Roasted tomatoes blended smooth with basil.", 10, 35, 4, domain.DifficultyEasy, "Soup",
		[]string{"1 kg tomatoes", "1 onion", "2 cloves garlic", "Fresh basil"},
		[]string{"Roast the tomatoes, onion and garlic.", "Blend with stock.", "Season and finish with basil."}},
	{"Weeknight Green Curry", "Coconut curry with whatever vegetables are in the fridge.", 15, 20, 4, domain.DifficultyMedium, "Weeknight",
		[]string{"2 tbsp green curry paste", "400 ml coconut milk", "Mixed vegetables", "Jasmine rice"},
		[]string{"Fry the paste.", "Add coconut milk and vegetables.", "Simmer until tender and serve over rice."}},
	{"Country Sourdough", "A slow, crackly loaf worth the wait.", 60, 45, 8, domain.DifficultyHard, "Baking",
		[]string{"500 g bread flour", "350 g water", "100 g levain", "10 g salt"},
		[]string{"Mix and autolyse.", "Stretch and fold over four hours.", "Shape, proof overnight and bake hot."}},
	{"Buttermilk Pancakes", "Fluffy weekend pancakes.", 10, 15, 4, domain.DifficultyEasy, "Breakfast",
		[]string{"2 cups flour", "2 cups buttermilk", "2 eggs", "Butter"},
		[]string{"Whisk the wet and dry separately.", "Combine gently.", "Fry in butter."}},
	{"Greek Salad", "Crunchy, salty and ready in minutes.", 10, 0, 2, domain.DifficultyEasy, "Salad",
		[]string{"Cucumber", "Tomatoes", "Red onion", "Feta", "Olives"},
		[]string{"Chop everything.", "Dress with oil and oregano."}},
	{"Braised Short Ribs", "Low and slow in red wine.", 30, 180, 6, domain.DifficultyHard, "Weekend",
		[]string{"2 kg short ribs", "1 bottle red wine", "Mirepoix", "Thyme"},
		[]string{"Brown the ribs.", "Soften the vegetables.", "Braise covered for three hours."}},
	{"Lemon Pasta", "Bright, creamy and pantry friendly.", 5, 12, 2, domain.DifficultyEasy, "Weeknight",
		[]string{"200 g spaghetti", "1 lemon", "Parmesan", "Butter"},
		[]string{"Boil the pasta.", "Toss with butter, lemon and cheese."}},
	{"Shakshuka", "Eggs poached in spiced tomato sauce.", 10, 25, 3, domain.DifficultyMedium, "Breakfast",
		[]string{"6 eggs", "1 tin tomatoes", "1 pepper", "Cumin and paprika"},
		[]string{"Cook down the peppers and spices.", "Add tomatoes.", "Crack in the eggs and cover."}},
}

var remarks = []string{
	"Made this twice this week!",
	"Added extra garlic, no regrets.",
	"The kids loved it.",
	"Perfect for a rainy evening.",
	"Halved the recipe and it still worked.",
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Simmer/data")
	}
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	fmt.Printf("Opening database in: %s\n", dataPath)

	st, err := sqlite.Open(filepath.Join(dataPath, "simmer.db"), nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	index, err := search.NewSearchIndex(search.Options{Dir: filepath.Join(dataPath, "search")})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer index.Close()
	st.SetSearchIndexer(index)

	key, err := auth.LoadOrGenerateKey(filepath.Join(dataPath, "auth.key"))
	if err != nil {
		log.Fatalf("Failed to load auth key: %v", err)
	}
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	sessions := service.NewSessionService(st, tokens, nil)
	authSvc := service.NewAuthService(st, tokens, sessions, nil, nil)
	tags := service.NewTagService(st, nil, nil)
	comments := service.NewCommentService(st, nil, nil, nil)
	recipes := service.NewRecipeService(st, tags, comments, nil, nil, nil)
	likes := service.NewLikeService(st, nil, nil, nil)
	favorites := service.NewFavoriteService(st, nil)
	profiles := service.NewProfileService(st, nil)

	ctx := context.Background()
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))

	var cooks []string
	for n := range *cookCount {
		email := fmt.Sprintf("cook%d@simmer.test", n+1)
		userID, err := createCook(ctx, authSvc, email)
		if err != nil {
			log.Printf("Failed to create %s: %v", email, err)
			continue
		}
		if _, err := profiles.Update(ctx, userID, service.UpdateProfileRequest{
			Username: fmt.Sprintf("cook%d", n+1),
			FullName: fmt.Sprintf("Demo Cook %d", n+1),
			Bio:      "Seeded for local testing.",
		}); err != nil {
			log.Printf("Failed to update profile for %s: %v", email, err)
		}
		cooks = append(cooks, userID)
		fmt.Printf("Cook ready: %s (%s)\n", email, userID)
	}

	if len(cooks) == 0 {
		log.Fatal("No cooks available, nothing to seed.")
	}

	var published []string
	for i, cookID := range cooks {
		perCook := 2 + rng.IntN(3)
		for j := range perCook {
			r := cookbook[(i*3+j)%len(cookbook)]
			publish := !*drafts || j > 0
			recipe, err := recipes.Create(ctx, cookID, service.RecipeInput{
				Title:           r.title,
				Description:     r.description,
				PrepTimeMinutes: domain.IntPtr(r.prep),
				CookTimeMinutes: domain.IntPtr(r.cook),
				Servings:        domain.IntPtr(r.servings),
				Difficulty:      string(r.difficulty),
				Ingredients:     r.ingredients,
				Instructions:    r.instructions,
				NewTag:          r.tag,
				Publish:         domain.BoolPtr(publish),
			})
			if err != nil {
				log.Printf("Failed to create %q: %v", r.title, err)
				continue
			}
			if publish {
				published = append(published, recipe.ID)
			}
		}
		fmt.Printf("  Cook %s wrote %d recipes\n", cookID, perCook)
	}

	reactions := 0
	for _, cookID := range cooks {
		for _, recipeID := range published {
			if rng.Float32() > 0.5 {
				continue
			}
			if _, err := likes.Toggle(ctx, cookID, recipeID); err != nil {
				log.Printf("Failed to like %s: %v", recipeID, err)
				continue
			}
			reactions++
			if rng.Float32() < 0.4 {
				if _, err := favorites.Toggle(ctx, cookID, recipeID); err != nil {
					log.Printf("Failed to save %s: %v", recipeID, err)
				}
			}
			if rng.Float32() < 0.3 {
				if _, err := comments.Add(ctx, cookID, recipeID, remarks[rng.IntN(len(remarks))]); err != nil {
					log.Printf("Failed to comment on %s: %v", recipeID, err)
				}
			}
		}
	}

	fmt.Printf("\nSeeded %d cooks, %d published recipes and %d likes.\n", len(cooks), len(published), reactions)
	fmt.Printf("Sign in as any cookN@simmer.test with password %q.\n", *password)
}

// createCook signs up a demo account, or logs in when it already exists.
func createCook(ctx context.Context, authSvc *service.AuthService, email string) (string, error) {
	resp, err := authSvc.Signup(ctx, service.SignupRequest{
		Email:           email,
		Password:        *password,
		ConfirmPassword: *password,
	})
	if err == nil {
		return resp.User.ID, nil
	}
	if !errors.Is(err, domainerrors.ErrAlreadyExists) {
		return "", err
	}

	resp, err = authSvc.Login(ctx, service.LoginRequest{Email: email, Password: *password})
	if err != nil {
		return "", err
	}
	return resp.User.ID, nil
}
