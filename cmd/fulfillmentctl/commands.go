package main

import (
	"context"
	"fmt"
	"strings"

	httptransport "creatorflow/contexts/campaign-fulfillment/fulfillment-service/transport/http"
	"creatorflow/internal/app/bootstrap"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the fulfillment tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) error {
				if err := rt.Repository.Migrate(ctx); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return err
			})
		},
	}
}

func (c *cli) relayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relay-once",
		Short: "Publish one batch of pending outbox events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) error {
				sent, err := rt.Module.Relay.RunOnce(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "published %d events\n", sent)
				return err
			})
		},
	}
}

func (c *cli) paymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Inspect and settle creator payments",
	}

	var status, creatorID string
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List payments, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) error {
				resp, err := rt.Module.Handler.ListPaymentsHandler(ctx, c.actor(), status, creatorID, limit)
				if err != nil {
					return err
				}
				if c.v.GetBool("json") {
					return c.printJSON(cmd.OutOrStdout(), resp)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(cmd.OutOrStdout())
				tw.AppendHeader(table.Row{"Payment", "Task", "Creator", "Campaign", "Amount", "Status", "Batch"})
				total := 0.0
				for _, p := range resp.Items {
					tw.AppendRow(table.Row{p.PaymentID, p.TaskID, p.CreatorID, p.CampaignID, fmt.Sprintf("%.2f", p.Amount), p.Status, p.BatchID})
					total += p.Amount
				}
				tw.AppendFooter(table.Row{"", "", "", "Total", fmt.Sprintf("%.2f", total), "", ""})
				tw.Render()
				return nil
			})
		},
	}
	list.Flags().StringVar(&status, "status", "pending", "status filter (pending, paid, failed; empty for all)")
	list.Flags().StringVar(&creatorID, "creator", "", "creator id filter")
	list.Flags().IntVar(&limit, "limit", 0, "maximum rows (0 for all)")

	var invoiceURL string
	paid := &cobra.Command{
		Use:   "mark-paid <payment-id>",
		Short: "Mark one payment paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paymentID, err := requireArg(args, "payment id")
			if err != nil {
				return err
			}
			return c.withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) error {
				resp, err := rt.Module.Handler.MarkPaidHandler(ctx, c.actor(), paymentID, httptransport.MarkPaidRequest{InvoiceURL: invoiceURL})
				if err != nil {
					return err
				}
				if c.v.GetBool("json") {
					return c.printJSON(cmd.OutOrStdout(), resp)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "payment %s is %s\n", resp.Payment.PaymentID, resp.Payment.Status)
				return err
			})
		},
	}
	paid.Flags().StringVar(&invoiceURL, "invoice-url", "", "invoice link stored on the payment")

	cmd.AddCommand(list, paid)
	return cmd
}

func (c *cli) payoutsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payouts",
		Short: "Create and inspect batch payouts",
	}

	var paymentIDs []string
	var notes, idempotencyKey string
	create := &cobra.Command{
		Use:   "create",
		Short: "Pay several pending payments in one batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) error {
				resp, err := rt.Module.Handler.CreateBatchPayoutHandler(ctx, c.actor(), idempotencyKey, httptransport.CreateBatchPayoutRequest{
					PaymentIDs: paymentIDs,
					Notes:      notes,
				})
				if err != nil {
					return err
				}
				if c.v.GetBool("json") {
					return c.printJSON(cmd.OutOrStdout(), resp)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "batch %s %s: %d payments, total %.2f\n",
					resp.BatchID, resp.Status, len(resp.PaymentIDs), resp.TotalAmount)
				return err
			})
		},
	}
	create.Flags().StringSliceVar(&paymentIDs, "payment-id", nil, "payment id (repeatable or comma separated)")
	create.Flags().StringVar(&notes, "notes", "", "free-form batch notes")
	create.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "replay key for safe retries")
	_ = create.MarkFlagRequired("payment-id")

	show := &cobra.Command{
		Use:   "show <batch-id>",
		Short: "Show a batch payout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batchID, err := requireArg(args, "batch id")
			if err != nil {
				return err
			}
			return c.withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) error {
				resp, err := rt.Module.Handler.GetBatchPayoutHandler(ctx, c.actor(), batchID)
				if err != nil {
					return err
				}
				if c.v.GetBool("json") {
					return c.printJSON(cmd.OutOrStdout(), resp)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(cmd.OutOrStdout())
				tw.AppendRows([]table.Row{
					{"Batch", resp.BatchID},
					{"Status", resp.Status},
					{"Total", fmt.Sprintf("%.2f", resp.TotalAmount)},
					{"Payments", strings.Join(resp.PaymentIDs, ", ")},
					{"Created by", resp.CreatedBy},
					{"Notes", resp.Notes},
				})
				tw.Render()
				return nil
			})
		},
	}

	cmd.AddCommand(create, show)
	return cmd
}

func (c *cli) shipmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shipments",
		Short: "Move product shipments along",
	}

	var carrier, tracking string
	ship := &cobra.Command{
		Use:   "ship <shipment-id>",
		Short: "Record that a shipment left the warehouse",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shipmentID, err := requireArg(args, "shipment id")
			if err != nil {
				return err
			}
			return c.withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) error {
				resp, err := rt.Module.Handler.MarkShippedHandler(ctx, c.actor(), shipmentID, httptransport.MarkShippedRequest{
					TrackingNumber: tracking,
					Carrier:        carrier,
				})
				if err != nil {
					return err
				}
				return c.printShipment(cmd, resp.Shipment)
			})
		},
	}
	ship.Flags().StringVar(&carrier, "carrier", "", "carrier name")
	ship.Flags().StringVar(&tracking, "tracking", "", "tracking number")

	deliver := &cobra.Command{
		Use:   "deliver <shipment-id>",
		Short: "Confirm a shipment was delivered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shipmentID, err := requireArg(args, "shipment id")
			if err != nil {
				return err
			}
			return c.withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) error {
				resp, err := rt.Module.Handler.ConfirmDeliveryHandler(ctx, c.actor(), shipmentID)
				if err != nil {
					return err
				}
				return c.printShipment(cmd, resp.Shipment)
			})
		},
	}

	var reason, note string
	issue := &cobra.Command{
		Use:   "issue <shipment-id>",
		Short: "Flag a shipment problem; the shipment stops there",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shipmentID, err := requireArg(args, "shipment id")
			if err != nil {
				return err
			}
			return c.withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) error {
				resp, err := rt.Module.Handler.FlagIssueHandler(ctx, c.actor(), shipmentID, httptransport.FlagIssueRequest{
					Reason: reason,
					Note:   note,
				})
				if err != nil {
					return err
				}
				return c.printShipment(cmd, resp.Shipment)
			})
		},
	}
	issue.Flags().StringVar(&reason, "reason", "", "issue reason code")
	issue.Flags().StringVar(&note, "note", "", "free-form note")

	cmd.AddCommand(ship, deliver, issue)
	return cmd
}

func (c *cli) printShipment(cmd *cobra.Command, shipment httptransport.ShipmentDTO) error {
	if c.v.GetBool("json") {
		return c.printJSON(cmd.OutOrStdout(), shipment)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	tw.AppendHeader(table.Row{"Shipment", "Campaign", "Creator", "Status", "Carrier", "Tracking"})
	tw.AppendRow(table.Row{shipment.ShipmentRequestID, shipment.CampaignID, shipment.CreatorID, shipment.Status, shipment.Carrier, shipment.TrackingNumber})
	tw.Render()
	return nil
}

func (c *cli) tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect creator tasks",
	}
	show := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task with its uploads and revisions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := requireArg(args, "task id")
			if err != nil {
				return err
			}
			return c.withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) error {
				resp, err := rt.Module.Handler.GetTaskHandler(ctx, c.actor(), taskID)
				if err != nil {
					return err
				}
				if c.v.GetBool("json") {
					return c.printJSON(cmd.OutOrStdout(), resp)
				}
				out := cmd.OutOrStdout()
				summary := table.NewWriter()
				summary.SetOutputMirror(out)
				summary.AppendRows([]table.Row{
					{"Task", resp.Task.TaskID},
					{"Campaign", resp.Task.CampaignID},
					{"Creator", resp.Task.CreatorID},
					{"Status", resp.Task.Status},
					{"Shipment", resp.ShipmentStatus},
					{"Amount", fmt.Sprintf("%.2f", resp.Task.PaymentAmount)},
				})
				summary.Render()

				if len(resp.Uploads) > 0 {
					uploads := table.NewWriter()
					uploads.SetOutputMirror(out)
					uploads.SetTitle("Uploads")
					uploads.AppendHeader(table.Row{"Upload", "File", "Type", "Size", "Status"})
					for _, u := range resp.Uploads {
						uploads.AppendRow(table.Row{u.UploadID, u.FileName, u.ContentType, u.SizeBytes, u.Status})
					}
					uploads.Render()
				}
				if len(resp.Revisions) > 0 {
					revisions := table.NewWriter()
					revisions.SetOutputMirror(out)
					revisions.SetTitle("Revisions")
					revisions.AppendHeader(table.Row{"Revision", "Tags", "Status", "Note"})
					for _, r := range resp.Revisions {
						revisions.AppendRow(table.Row{r.RevisionRequestID, strings.Join(r.Tags, ","), r.Status, r.Note})
					}
					revisions.Render()
				}
				return nil
			})
		},
	}
	cmd.AddCommand(show)
	return cmd
}
