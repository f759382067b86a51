// Package mariadbd wraps the two external programs of a MariaDB/MySQL
// distribution: the one-shot mysql_install_db command that seeds a data
// directory, and the long-lived mysqld server process. It owns the argument
// contracts of both binaries, including the mandated flag ordering and the
// verbatim console line that signals server readiness.
package mariadbd
