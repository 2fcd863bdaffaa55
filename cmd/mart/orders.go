// ABOUTME: order lifecycle subcommands: list, show, checkout, pay,
// ABOUTME: cancel, complete, plus the account profile commands.
package main

import (
	"context"
	"flag"
	"fmt"

	"dailymart/shop"
)

func cmdOrders(args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
		args = args[1:]
	}

	switch sub {
	case "list":
		return withShop(func(ctx context.Context, s *shop.Shop) error {
			txs, err := s.Client().Transactions(ctx)
			if err != nil {
				return err
			}
			if len(txs) == 0 {
				fmt.Println("no orders")
				return nil
			}
			for _, tx := range txs {
				fmt.Printf("#%d\t%s\t%s/%s\tRp%.0f\n",
					tx.ID, tx.CreatedAt, tx.Status, tx.DeliveryStatus, tx.Total)
			}
			return nil
		})

	case "show":
		fs := flag.NewFlagSet("orders show", flag.ExitOnError)
		id := fs.Int("id", 0, "order id")
		_ = fs.Parse(args)
		if *id <= 0 {
			return fmt.Errorf("orders show: -id required")
		}
		return withShop(func(ctx context.Context, s *shop.Shop) error {
			tx, err := s.Client().Transaction(ctx, *id)
			if err != nil {
				return err
			}
			printTransaction(tx)
			return nil
		})
	}
	return fmt.Errorf("orders: unknown subcommand %q", sub)
}

func printTransaction(tx shop.Transaction) {
	fmt.Printf("order #%d  %s\n", tx.ID, tx.CreatedAt)
	fmt.Printf("status: %s  delivery: %s  payment: %s\n",
		tx.Status, tx.DeliveryStatus, tx.PaymentMethod)
	if tx.Branch != nil {
		fmt.Printf("branch: %s, %s\n", tx.Branch.Name, tx.Branch.Address)
	}
	if tx.Courier != nil {
		fmt.Printf("courier: %s\n", tx.Courier.User.Name)
	}
	for _, d := range tx.Details {
		fmt.Printf("  %s\tx%d\tRp%.0f\n", d.Product.Name, d.Qty, d.Subtotal)
	}
	fmt.Printf("total: Rp%.0f\n", tx.Total)
	for _, u := range tx.DeliveryUpdates {
		fmt.Printf("  [%s] %s\n", u.CreatedAt, u.StatusMessage)
	}
}

func cmdCheckout(args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ExitOnError)
	method := fs.String("method", "cod", "payment method")
	_ = fs.Parse(args)

	return withShop(func(ctx context.Context, s *shop.Shop) error {
		tx, err := s.Checkout(ctx, *method)
		if err != nil {
			return err
		}
		fmt.Printf("order #%d created, Rp%.0f via %s\n", tx.ID, tx.Total, tx.PaymentMethod)
		return nil
	})
}

func cmdPay(args []string) error {
	return orderTransition("pay", args, func(ctx context.Context, s *shop.Shop, id int) error {
		return s.Pay(ctx, id)
	})
}

func cmdCancel(args []string) error {
	return orderTransition("cancel", args, func(ctx context.Context, s *shop.Shop, id int) error {
		return s.Cancel(ctx, id)
	})
}

func cmdComplete(args []string) error {
	return orderTransition("complete", args, func(ctx context.Context, s *shop.Shop, id int) error {
		return s.CompleteOrder(ctx, id)
	})
}

// orderTransition is the shared shape of pay/cancel/complete: one -id
// flag and a server-confirmed status change.
func orderTransition(name string, args []string, fn func(context.Context, *shop.Shop, int) error) error {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	id := fs.Int("id", 0, "order id")
	_ = fs.Parse(args)
	if *id <= 0 {
		return fmt.Errorf("%s: -id required", name)
	}
	return withShop(func(ctx context.Context, s *shop.Shop) error {
		if err := fn(ctx, s, *id); err != nil {
			return err
		}
		fmt.Printf("order #%d: %s ok\n", *id, name)
		return nil
	})
}

func cmdProfile(args []string) error {
	sub := "show"
	if len(args) > 0 {
		sub = args[0]
		args = args[1:]
	}

	switch sub {
	case "show":
		return withShop(func(ctx context.Context, s *shop.Shop) error {
			p, err := s.Profile(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%s <%s> role=%s\n", p.User.Name, p.User.Email, p.User.Role)
			if p.Customer != nil {
				fmt.Printf("address: %s\nphone: %s\n", p.Customer.Address, p.Customer.Phone)
			}
			return nil
		})

	case "set":
		fs := flag.NewFlagSet("profile set", flag.ExitOnError)
		field := fs.String("field", "", "profile field (alamat, no_hp, nama)")
		value := fs.String("value", "", "new value")
		_ = fs.Parse(args)
		if *field == "" {
			return fmt.Errorf("profile set: -field required")
		}
		return withShop(func(ctx context.Context, s *shop.Shop) error {
			p, err := s.UpdateProfile(ctx, *field, *value)
			if err != nil {
				return err
			}
			fmt.Printf("profile updated for %s\n", p.User.Name)
			return nil
		})
	}
	return fmt.Errorf("profile: unknown subcommand %q", sub)
}
