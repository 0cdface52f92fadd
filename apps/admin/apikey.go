package main

func (cli *commandLine) setAPIKey(guildID int64, key string) error {
	return cli.settingsSvc.SetAPIKey(guildID, key)
}
