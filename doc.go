// Package invitekit adds users from a CSV file to a Telegram channel
// using the MTProto protocol via gotd/td.
//
// It reads user identifiers (numeric IDs or usernames) from a tabular
// file, deduplicates them, and invites each one to the target channel
// in rate-limit-friendly batches, recording a per-user outcome row to
// a results file.
//
// Basic usage:
//
//	cfg := invitekit.Config{
//	    APIID:   12345,
//	    APIHash: "your-api-hash",
//	    Channel: "@yourchannel",
//	}
//
//	users, err := invitekit.ReadUsers("telegram_users.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, err := invitekit.NewResultWriter("invite_results.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer out.Close()
//
//	client, err := invitekit.NewClient(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = client.Run(context.Background(), func(ctx context.Context) error {
//	    _, err := invitekit.NewInviter(client, cfg, out).Run(ctx, users)
//	    return err
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
package invitekit
