// Command reconcile checks one supplier invoice against its purchase order and updates the
// inventory ledger.
//
// Usage:
//
//	reconcile --invoice factura.jpg [--order 43564893] [--decision 1|2]
//	reconcile --text factura.txt --order 43564893
//
// When the invoice only partially matches the order and --decision is not given, the
// operator is asked on stdin whether to accept the receipt anyway.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"stockrecon/internal/app"
	"stockrecon/internal/config"
	"stockrecon/internal/decision"
	"stockrecon/internal/domain"
	"stockrecon/internal/logging"
	"stockrecon/internal/port"
	"stockrecon/internal/report"
	"stockrecon/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	invoicePath := flag.String("invoice", "", "path to the scanned invoice image (jpg or png)")
	textPath := flag.String("text", "", "path to already extracted invoice text")
	orderID := flag.String("order", "", "purchase order number (read from the invoice when omitted)")
	answer := flag.String("decision", "", "answer for partial matches: 1 accept, 2 reject (prompts when omitted)")
	flag.Parse()

	if *invoicePath == "" && *textPath == "" {
		flag.Usage()
		return domain.ErrInvoiceMissing
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.NewWithOutput(cfg.Log, os.Stderr)

	var provider port.DecisionProvider = decision.NewPrompt(os.Stdin, os.Stdout)
	if *answer != "" {
		d, err := domain.ParseDecision(*answer)
		if err != nil {
			return err
		}
		provider = decision.Fixed(d)
	}

	input := service.StartInput{OrderID: *orderID}
	if *invoicePath != "" {
		if input.Image, err = os.ReadFile(*invoicePath); err != nil {
			return fmt.Errorf("reading invoice: %w", err)
		}
	}
	if *textPath != "" {
		text, err := os.ReadFile(*textPath)
		if err != nil {
			return fmt.Errorf("reading invoice text: %w", err)
		}
		input.Text = string(text)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	receipt, err := a.Service.Start(ctx, input)
	if err != nil {
		return err
	}

	fmt.Printf("Order %s\n", receipt.OrderID)
	for _, line := range report.Summary(receipt.Result) {
		fmt.Println(line)
	}

	switch receipt.State {
	case domain.ReceiptStateApplied:
		fmt.Println("Inventory updated.")
		return nil
	case domain.ReceiptStateUnvalidatable:
		printDiscrepancies(receipt.Result)
		return errors.New("invoice could not be validated against the order; inventory unchanged")
	}

	if _, ok := provider.(decision.Fixed); ok {
		printDiscrepancies(receipt.Result)
	}
	receipt, err = a.Service.Await(ctx, receipt.ID, provider)
	if err != nil {
		return err
	}

	if receipt.State == domain.ReceiptStateAccepted {
		fmt.Println("Inventory updated with the received quantities.")
	} else {
		fmt.Println("Receipt rejected; inventory unchanged.")
	}
	return nil
}

func printDiscrepancies(res *domain.ReconciliationResult) {
	for _, line := range report.Describe(res) {
		fmt.Println(line)
	}
}
