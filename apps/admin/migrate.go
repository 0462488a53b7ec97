package main

func (cli *commandLine) runMigration(args []string) error {
	if cli.migrate == nil {
		return errNoDatabase
	}
	return cli.migrate(args[0], args[1:]...)
}
