// Package decision provides the operator answer for partially matched receipts.
package decision

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"stockrecon/internal/domain"
	"stockrecon/internal/report"
)

const (
	question = "Accept the receipt anyway? (enter '1': yes / '2': no)"
	retry    = "Invalid option. Please enter '1': yes / '2': no"
)

// Prompt asks an operator on a terminal. Anything other than 1 or 2 is asked again.
type Prompt struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompt creates a Prompt reading answers from in and writing questions to out.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewScanner(in), out: out}
}

// Decide prints the discrepancies of receipt and waits for a valid answer.
func (p *Prompt) Decide(ctx context.Context, receipt *domain.Receipt) (domain.Decision, error) {
	if receipt.Result != nil {
		for _, line := range report.Describe(receipt.Result) {
			fmt.Fprintln(p.out, line)
		}
	}
	fmt.Fprintln(p.out, question)

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return "", fmt.Errorf("reading decision: %w", err)
			}
			return "", fmt.Errorf("reading decision: %w", io.ErrUnexpectedEOF)
		}
		d, err := domain.ParseDecision(p.in.Text())
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, domain.ErrInvalidDecision) {
			return "", err
		}
		fmt.Fprintln(p.out, retry)
	}
}

// Fixed always answers with the same decision.
type Fixed domain.Decision

func (f Fixed) Decide(context.Context, *domain.Receipt) (domain.Decision, error) {
	return domain.Decision(f), nil
}
