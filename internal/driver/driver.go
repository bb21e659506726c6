// Package driver feeds a node with a script of value-transfer
// transactions to exercise throughput end-to-end, per spec.md §4.7 and
// §6.4.
package driver

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/noobcash/noobcash-go/internal/node"
	"github.com/noobcash/noobcash-go/pkg/logging"
)

// Run waits for the node's network to fully enroll, then reads path
// line by line. Each line has the form "id<k> <amount>"; <k> indexes
// into the node's network roster, selecting the recipient. Unknown ids
// and non-positive amounts count as failures, not fatal errors.
func Run(ctx context.Context, n *node.Node, path string) error {
	log := logging.GetDefault().Component("driver")

	for len(n.Network()) < n.NNodes() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("driver: open %s: %w", path, err)
	}
	defer file.Close()

	log.Info("reading transaction script", "path", path)

	var successful, failed int
	start := time.Now()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		recipient, amount, err := parseLine(n, line)
		if err != nil {
			log.Warn("skipping malformed line", "line", line, "error", err)
			failed++
			continue
		}

		if r := n.CreateTransaction(ctx, recipient, amount); r.OK() {
			successful++
		} else {
			failed++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("driver: read %s: %w", path, err)
	}

	elapsed := time.Since(start).Seconds()
	total := successful + failed
	var throughput float64
	if elapsed > 0 {
		throughput = float64(total) / elapsed
	}

	n.RecordDriverMetrics(successful, failed, throughput)

	log.Info("finished reading transaction script", "path", path, "successful", successful, "failed", failed)
	return nil
}

// parseLine parses "id<k> <amount>" and resolves k against the node's
// network roster.
func parseLine(n *node.Node, line string) (recipient string, amount int64, err error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return "", 0, fmt.Errorf("expected 2 fields, got %d", len(fields))
	}

	idField := fields[0]
	if !strings.HasPrefix(idField, "id") {
		return "", 0, fmt.Errorf("malformed id field %q", idField)
	}
	k, err := strconv.Atoi(strings.TrimPrefix(idField, "id"))
	if err != nil {
		return "", 0, fmt.Errorf("malformed id field %q: %w", idField, err)
	}

	amount, err = strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed amount %q: %w", fields[1], err)
	}

	network := n.Network()
	if k < 0 || k >= len(network) {
		return "", 0, fmt.Errorf("unknown node id %d", k)
	}
	return network[k].PublicKey, amount, nil
}
