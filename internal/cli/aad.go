package cli

import (
	"github.com/spf13/cobra"

	"github.com/tgedr/connectors/pkg/azuread"
)

func newAADCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aad",
		Short: "Azure AD tokens",
	}

	var (
		tenant, clientID, clientSecret, resource string
		scopes                                   []string
	)
	token := &cobra.Command{
		Use:   "token",
		Short: "Request an access token with the client credentials grant",
		Long: `Request an access token with the client credentials grant.

With --resource (or $AZURE_RESOURCE) the v1 endpoint is used. With one or
more --scope flags the token is issued by the v2 endpoint through MSAL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ac := rt.app.Config().AzureAD
			tenant = orDefault(tenant, ac.Tenant)
			clientID = orDefault(clientID, ac.ClientID)
			clientSecret = orDefault(clientSecret, ac.ClientSecret)

			if len(scopes) > 0 {
				src, err := azuread.NewConfidentialSource(cmd.Context(), tenant, clientID, clientSecret, scopes,
					azuread.ConfidentialOptions{
						AuthorityURL: ac.AuthorityURL,
						HTTPClient:   rt.app.HTTPClient("azuread"),
						Logger:       rt.app.Logger(),
					})
				if err != nil {
					return err
				}
				tok, err := src.Token()
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"access_token": tok.AccessToken,
					"token_type":   tok.TokenType,
					"expiry":       tok.Expiry,
				})
			}

			resp, err := rt.app.AzureAD().GetToken(cmd.Context(), tenant, clientID, clientSecret, orDefault(resource, ac.Resource))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	token.Flags().StringVar(&tenant, "tenant", "", "tenant id or domain (default $AZURE_TENANT_ID)")
	token.Flags().StringVar(&clientID, "client-id", "", "application id (default $AZURE_CLIENT_ID)")
	token.Flags().StringVar(&clientSecret, "client-secret", "", "application secret (default $AZURE_CLIENT_SECRET)")
	token.Flags().StringVar(&resource, "resource", "", "resource to request a v1 token for (default $AZURE_RESOURCE)")
	token.Flags().StringArrayVar(&scopes, "scope", nil, "v2 scope, e.g. https://storage.azure.com/.default (repeatable)")

	cmd.AddCommand(token)
	return cmd
}
