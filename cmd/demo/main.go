// Demo del SDK contra un API corriendo (API_BASE_URL): lista el
// catálogo, crea una mascota con escritura optimista y muestra cómo
// el cache la reconcilia.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"pet-catalog/internal/platform/config"
	"pet-catalog/pkg/petstore"
)

func main() {
	cfg := config.Load()

	client, err := petstore.New(petstore.Options{
		BaseURL: cfg.APIBaseURL,
		Delay:   cfg.ClientDelay,
	})
	if err != nil {
		log.Fatalf("client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	watch := client.WatchPets(petstore.Filter{})
	fmt.Printf("state: %s\n", watch.Snapshot().State)

	pets, err := client.ListPets(ctx, petstore.Filter{})
	if err != nil {
		log.Fatalf("list pets: %v", err)
	}
	fmt.Printf("state: %s, %d pets\n", watch.Snapshot().State, len(pets))

	created, err := client.CreatePet(ctx, petstore.NewPet{Name: "Rex", Type: "DOG"})
	if err != nil {
		log.Fatalf("create pet: %v", err)
	}
	fmt.Printf("created %s (%s) img=%s\n", created.Name, created.ID, created.Img)

	// El cache ya tiene la lista reconciliada, sin ir a la red.
	snap := watch.Snapshot()
	fmt.Printf("cached list (%s):\n", snap.State)
	for _, p := range snap.Pets {
		fmt.Printf("  - %s %s (%s)\n", p.ID, p.Name, p.Type)
	}
}
