package cli

import (
	"github.com/spf13/cobra"
)

func newSFTPCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sftp",
		Short: "SFTP file transfer",
	}

	upload := &cobra.Command{
		Use:   "upload LOCAL REMOTE",
		Short: "Upload a local file",
		Long: `Upload a local file to the configured SFTP server, replacing REMOTE.

A LOCAL path under /mnt that does not exist is read from /dbfs/mnt instead.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := rt.app.SFTP()
			if err != nil {
				return err
			}
			res, err := u.Upload(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.AddCommand(upload)
	return cmd
}
