// ABOUTME: cart and favorites subcommands for the mart CLI.
// ABOUTME: Mutations go through the optimistic synchronizers in shop.
package main

import (
	"context"
	"flag"
	"fmt"

	"dailymart/shop"
)

func cmdCart(args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
		args = args[1:]
	}

	switch sub {
	case "list":
		return withShop(func(ctx context.Context, s *shop.Shop) error {
			items, err := s.Client().Cart(ctx)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("cart is empty")
				return nil
			}
			var total float64
			for _, it := range items {
				sub := float64(it.Qty) * it.Product.Price
				total += sub
				fmt.Printf("%d\t%s\tx%d\tRp%.0f\n", it.ProductID, it.Product.Name, it.Qty, sub)
			}
			fmt.Printf("total\tRp%.0f\n", total)
			return nil
		})

	case "add":
		fs := flag.NewFlagSet("cart add", flag.ExitOnError)
		product := fs.Int("product", 0, "product id")
		_ = fs.Parse(args)
		if *product <= 0 {
			return fmt.Errorf("cart add: -product required")
		}
		return withShop(func(ctx context.Context, s *shop.Shop) error {
			if err := s.Cart().Add(ctx, *product); err != nil {
				return err
			}
			fmt.Printf("added product %d\n", *product)
			return nil
		})

	case "rm":
		fs := flag.NewFlagSet("cart rm", flag.ExitOnError)
		product := fs.Int("product", 0, "product id")
		_ = fs.Parse(args)
		if *product <= 0 {
			return fmt.Errorf("cart rm: -product required")
		}
		return withShop(func(ctx context.Context, s *shop.Shop) error {
			if err := s.Cart().Remove(ctx, *product); err != nil {
				return err
			}
			fmt.Printf("removed product %d\n", *product)
			return nil
		})

	case "qty":
		fs := flag.NewFlagSet("cart qty", flag.ExitOnError)
		product := fs.Int("product", 0, "product id")
		n := fs.Int("n", 1, "desired quantity")
		_ = fs.Parse(args)
		if *product <= 0 {
			return fmt.Errorf("cart qty: -product required")
		}
		return withShop(func(ctx context.Context, s *shop.Shop) error {
			if err := s.Cart().SetQuantity(ctx, *product, *n); err != nil {
				return err
			}
			fmt.Printf("product %d set to x%d\n", *product, *n)
			return nil
		})
	}
	return fmt.Errorf("cart: unknown subcommand %q", sub)
}

func cmdFav(args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
		args = args[1:]
	}

	switch sub {
	case "list":
		return withShop(func(ctx context.Context, s *shop.Shop) error {
			products, err := s.Client().Favorites(ctx)
			if err != nil {
				return err
			}
			if len(products) == 0 {
				fmt.Println("no favorites")
				return nil
			}
			for _, p := range products {
				fmt.Printf("%d\t%s\tRp%.0f\n", p.ID, p.Name, p.Price)
			}
			return nil
		})

	case "toggle":
		fs := flag.NewFlagSet("fav toggle", flag.ExitOnError)
		product := fs.Int("product", 0, "product id")
		_ = fs.Parse(args)
		if *product <= 0 {
			return fmt.Errorf("fav toggle: -product required")
		}
		return withShop(func(ctx context.Context, s *shop.Shop) error {
			s.Favorites().Load(ctx)
			before := s.Favorites().Contains(*product)
			s.Favorites().Toggle(ctx, *product)
			if s.Favorites().Contains(*product) == before {
				return fmt.Errorf("fav toggle: product %d unchanged", *product)
			}
			if before {
				fmt.Printf("product %d unfavorited\n", *product)
			} else {
				fmt.Printf("product %d favorited\n", *product)
			}
			return nil
		})
	}
	return fmt.Errorf("fav: unknown subcommand %q", sub)
}
