package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cenkalti/backoff/v5"
	"github.com/mhotoys/shopctl/internal/api"
	"github.com/mhotoys/shopctl/internal/models"
)

// ProductsCmd browses the public catalog.
type ProductsCmd struct {
	List ProductsListCmd `cmd:"" help:"List catalog products"`
	Show ProductsShowCmd `cmd:"" help:"Show one product"`
}

// ProductsListCmd lists the catalog. Reads are public and cacheable.
type ProductsListCmd struct {
	Retry bool `help:"Retry on network failure" default:"false"`
}

func (p *ProductsListCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(ctx, globals, "products list")
	if err != nil {
		return err
	}

	fetch := func() ([]models.Product, error) {
		var products []models.Product
		if err := app.Client.GetCached(ctx, "/products", nil, &products); err != nil {
			if p.Retry && errors.Is(err, api.ErrNetworkUnreachable) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return products, nil
	}

	products, err := backoff.Retry(ctx, fetch,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(4),
	)
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}

	if len(products) == 0 {
		fmt.Println("No products found.")
		return nil
	}

	printProducts(products)
	return nil
}

// ProductsShowCmd shows one catalog product.
type ProductsShowCmd struct {
	ID int64 `arg:"" help:"Product ID"`
}

func (p *ProductsShowCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(ctx, globals, "products show")
	if err != nil {
		return err
	}

	var product models.Product
	path := fmt.Sprintf("/products/%d", p.ID)
	if err := app.Client.GetCached(ctx, path, nil, &product); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return fmt.Errorf("product %d not found", p.ID)
		}
		return fmt.Errorf("failed to fetch product: %w", err)
	}

	fmt.Printf("Name:        %s\n", product.Name)
	fmt.Printf("Price:       %.2f\n", product.Price)
	fmt.Printf("Age range:   %s\n", product.AgeRange)
	fmt.Printf("Description: %s\n", product.Description)
	if product.ImageURL != "" {
		fmt.Printf("Image:       %s\n", product.ImageURL)
	}

	return nil
}

func printProducts(products []models.Product) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tAGE RANGE")

	for _, product := range products {
		name := product.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\n", product.ProductID, name, product.Price, product.AgeRange)
	}

	w.Flush()
}
